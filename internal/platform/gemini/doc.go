// Package gemini implements generation.Client on top of Google's Gemini API
// (google.golang.org/genai). It is the fallback backend when no OpenAI key is
// configured.
//
// The adapter sends the rendered prompt as a single user turn and returns the
// model's text unchanged; parsing belongs to the generation package. Safety
// blocks are reported as generation.ErrContentBlocked.
package gemini
