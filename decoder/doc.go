// Package decoder supplies the picture sources a session plays.
//
// Network and file URLs are decoded by an ffmpeg child process that writes
// packed BGR24 pictures to a pipe; ffprobe is consulted first for the
// picture size and frame rate. The pattern scheme generates scrolling colour
// bars in process, which is handy for demos and tests:
//
//	pattern://640x360?fps=30&frames=300&format=yuv420p
package decoder
