// Package generation turns educational materials into exam questions. It owns
// the prompt template, the Client boundary to external LLM backends, and the
// response parser that recovers question records from whatever text the model
// returns. Concrete backends live under internal/platform.
package generation
