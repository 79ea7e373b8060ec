/*
Package pixel defines the uniform in-memory image produced and consumed by
the pixcodec format codecs.

An Image is a tightly packed, top-down, row-major byte buffer in one of a
closed set of Formats. The buffer is owned by the Image: New takes ownership
of the slice it is given and codecs never keep a reference after returning.
*/
package pixel
