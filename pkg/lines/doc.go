// Package lines rebuilds readable text from OCR line detections.
//
// OCR services report lines in no particular order, each with a bounding box
// string "x,y,width,height" and a list of word fragments. Reconstruct parses
// every box, joins each line's words without separators (the expected input is
// Japanese), sorts lines top to bottom then left to right, and concatenates
// them.
//
// Dialogue captures often place a speaker name to the right of a left aligned
// text block. When the first line sits more than NameOffset pixels right of
// every other line it is emitted as a prefix:
//
//	Tanaka: HelloWorld
//
// Any malformed bounding box fails the whole set with a *ParseError; no
// partial text is produced.
package lines
