package chart

// Renderer draws a configuration into a string of the given size.
type Renderer interface {
	Render(cfg Config, width, height int) string
}

// Instance is a chart drawn on a canvas. Once destroyed it renders nothing.
type Instance struct {
	ID        int
	Config    Config
	destroyed bool
}

// Destroy releases the instance. Destroying twice is harmless.
func (i *Instance) Destroy() {
	i.destroyed = true
}

// Destroyed reports whether Destroy has been called.
func (i *Instance) Destroyed() bool {
	return i.destroyed
}

// Canvas owns at most one live chart instance. Drawing always destroys the
// previous instance before creating the next one; instances are never
// updated in place.
type Canvas struct {
	Name     string
	renderer Renderer
	current  *Instance
	seq      int
}

// NewCanvas creates an empty canvas drawn with r. A nil renderer selects
// the terminal renderer.
func NewCanvas(name string, r Renderer) *Canvas {
	if r == nil {
		r = NewTermRenderer()
	}
	return &Canvas{Name: name, renderer: r}
}

// Draw replaces the current instance with a new one built from cfg.
func (c *Canvas) Draw(cfg Config) *Instance {
	c.Clear()
	c.seq++
	c.current = &Instance{ID: c.seq, Config: cfg}
	return c.current
}

// Clear destroys the current instance, if any.
func (c *Canvas) Clear() {
	if c.current != nil {
		c.current.Destroy()
		c.current = nil
	}
}

// Current returns the live instance or nil.
func (c *Canvas) Current() *Instance {
	return c.current
}

// View renders the live instance, or an empty string when nothing is drawn.
func (c *Canvas) View(width, height int) string {
	if c.current == nil || c.current.Destroyed() {
		return ""
	}
	return c.renderer.Render(c.current.Config, width, height)
}
