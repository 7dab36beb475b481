// Package render defines the render collaborator consumed by the sync
// engine. Real deployments plug a Markdown pipeline in; the Plain
// implementation passes bodies through untouched.
package render

// Renderer produces derived rendering artifacts from a Markdown body.
type Renderer interface {
	Render(body string) (string, error)
}

// Plain is a passthrough Renderer.
type Plain struct{}

// Render returns the body unchanged.
func (Plain) Render(body string) (string, error) { return body, nil }
