/*
Package dds decodes DirectDraw Surface textures into pixel.Image values.

Only the base mipmap level is decoded. Block-compressed surfaces (DXT1, DXT3,
DXT5, BC4 and BC5, declared by FourCC or by a DX10 extension header) are
expanded through github.com/woozymasta/bcn into RGBA8888. Uncompressed
surfaces described by channel bit masks decode into the nearest direct layout:
RGB888 or RGBA8888 for color, Gray8 or GrayAlpha88 for luminance.

Files written by the Enfusion toolchain (EDDS) store the mip chain as a table
of COPY or LZ4 blocks after the header. Such files are detected and their
largest level is inflated before decoding.

Signed, HDR and BC7 surfaces are reported as ErrUnsupportedFormat rather than
approximated. All failures are returned as *pixel.DecodeError.
*/
package dds
