// Package sanitize guards the service surfaces against hostile text.
//
// Input rejects oversized or malformed UTF-8 payloads and strips control
// characters that could corrupt logs or terminals. Markup itself is left
// alone: removing it is the normalizer's job.
package sanitize
