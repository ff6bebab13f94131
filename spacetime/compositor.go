package spacetime

// Compositor renders the active clips of one output kind.
// The composition drives it; a compositor never calls back into clip
// lifecycle methods.
type Compositor interface {
	// Kind names the output this compositor produces, e.g. "video" or "text".
	Kind() string

	// Add is called when a clip joins the composition.
	Add(c *Clip)

	// Remove is called when a clip leaves the composition.
	Remove(c *Clip)

	// Activate is called when a clip enters the playhead.
	Activate(c *Clip)

	// Deactivate is called when a clip leaves the playhead.
	Deactivate(c *Clip)

	// Draw renders a frame.
	Draw()

	// Destroy releases the compositor.
	Destroy()
}

// CompositorFactory creates a compositor for a composition.
type CompositorFactory func(comp *Composition) (Compositor, error)
