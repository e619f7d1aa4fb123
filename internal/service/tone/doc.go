// Package tone plays alarm tones through the operating system's audio player.
package tone
