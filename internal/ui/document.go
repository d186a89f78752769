package ui

import "sync"

// KeyEscape is the key name that closes the detail view
const KeyEscape = "Escape"

// Document is the page a session renders into: its title and the global
// keydown listeners.
type Document struct {
	mu           sync.Mutex
	defaultTitle string
	title        string
	nextID       int
	listeners    map[int]func(key string)
}

// NewDocument creates a document showing defaultTitle
func NewDocument(defaultTitle string) *Document {
	return &Document{
		defaultTitle: defaultTitle,
		title:        defaultTitle,
		listeners:    make(map[int]func(string)),
	}
}

// Title returns the current page title
func (d *Document) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title
}

// SetTitle replaces the page title
func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	d.title = title
	d.mu.Unlock()
}

// ResetTitle restores the default title
func (d *Document) ResetTitle() {
	d.SetTitle(d.defaultTitle)
}

// AddKeyListener registers fn for key presses. The returned function
// removes it and is safe to call more than once.
func (d *Document) AddKeyListener(fn func(key string)) (remove func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.listeners, id)
			d.mu.Unlock()
		})
	}
}

// ListenerCount returns the number of registered key listeners
func (d *Document) ListenerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// DispatchKey delivers a key press to every listener. Listeners run without
// the document lock held so they may remove themselves.
func (d *Document) DispatchKey(key string) {
	d.mu.Lock()
	fns := make([]func(string), 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}
