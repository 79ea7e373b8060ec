/*
Package pixcodec reads DDS, PSD and TGA images into one uniform
pixel.Image and writes TGA.

Detect picks the container from leading signature bytes, then from a file
name extension, then from TGA header plausibility. A signature always wins
over a conflicting extension. Read and its variants dispatch to the dds, psd
and tga packages; each decode either returns a complete image or an error,
never a partial buffer. Decode failures are *pixel.DecodeError values that
name the format, the section and the byte offset.

	img, err := pixcodec.ReadNamed(data, "albedo.edds")
	if err != nil {
		return err
	}
	out, err := pixcodec.WriteWithOptions(img, pixcodec.TypeTGA, &pixcodec.WriteOptions{Compress: true})

All functions are safe for concurrent use; codecs keep no state between
calls. Logging is silent until SetLogger is called.
*/
package pixcodec
