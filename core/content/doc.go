// Package content is the file/content abstraction used by task descriptors
// and task records: typed wrappers for text, image, audio, video, and
// generic-file payloads, plus the mime-type tables used to name output files.
package content
