// Package media resolves asset locators and loads the bytes sent to the
// completion service. Oversized images are downscaled before encoding; video
// assets contribute a single frame extracted by an external ffmpeg binary.
package media
