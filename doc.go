// Package uhdrsplit separates an UltraHDR (JPEG/R) file into its base image,
// its gain map image and the hdrgm gain map metadata.
//
// The split is driven by a JPEG marker segment scanner that walks the whole
// buffer, closing a sub-image at every EOI marker, and by an XMP extractor
// that reads the hdrgm fields in both their attribute and rdf:Seq forms.
// No pixel data is decoded.
package uhdrsplit
