/*
Package tga reads and writes Truevision TGA images.

Decode accepts color-mapped, truecolor and grayscale images, raw or
run-length encoded, in any of the four origin corners, and returns a
top-down pixel.Image. Palettes are expanded during decode. Encode writes
truecolor or grayscale images with optional run-length compression.
*/
package tga
