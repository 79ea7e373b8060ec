/*
Package psd decodes Adobe Photoshop documents (PSD, and PSB large documents)
into RGBA8888 pixel.Image values.

A document is decoded either from its merged composite image or by
compositing its layers bottom to top. StrategyAuto prefers the composite and
falls back to layers when the composite cannot be decoded.

Supported input covers 1, 8 and 16 bits per channel in Bitmap, Grayscale,
Duotone (decoded as grayscale), Indexed, RGB and CMYK modes, with raw,
PackBits, zip and zip-with-prediction channel compression. Multichannel and
Lab documents are rejected with ErrUnsupportedColorMode.

Layer compositing honors visibility, group visibility, opacity and user
masks. Blend modes other than normal and clipping masks are composited as
plain alpha-over and reported through the package logger. Text, adjustment
and vector data are not interpreted.
*/
package psd
