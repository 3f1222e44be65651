// Command uhdrsplit splits UltraHDR gain map JPEGs into their parts.
//
//	uhdrsplit split photo.jpg           # photo_split_1.jpg, photo_split_2.jpg, photo_hdrgm.txt
//	uhdrsplit scan photo.jpg            # marker segment table
//	uhdrsplit detect photo.jpg          # ultrahdr / not ultrahdr
//	uhdrsplit config init               # sample configuration
package main
