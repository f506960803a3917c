// Package pngdec decodes non-interlaced, 8-bit PNG images into RGBA.
//
// Decoding runs in four steps: the chunk stream is split and dispatched
// (IHDR, PLTE, tRNS, IDAT, IEND; everything else is skipped), the IDAT
// payloads are inflated as one zlib stream, each scanline's filter is
// reversed, and pixels are resolved to RGBA on access according to the
// color type, palette and transparency chunk. CRCs are not verified.
package pngdec
