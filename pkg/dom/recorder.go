package dom

import (
	"sync"

	"golang.org/x/net/html"
)

// Mutation kinds counted by Recorder.
const (
	MutCreate    = "create"
	MutInsert    = "insert"
	MutRemove    = "remove"
	MutAttribute = "attribute"
	MutText      = "text"
	MutStyle     = "style"
)

// Recorder wraps an API and counts mutations by kind. Reads pass through.
type Recorder struct {
	API

	mu     sync.Mutex
	counts map[string]int
}

// NewRecorder wraps api.
func NewRecorder(api API) *Recorder {
	return &Recorder{API: api, counts: make(map[string]int)}
}

func (r *Recorder) inc(kind string) {
	r.mu.Lock()
	r.counts[kind]++
	r.mu.Unlock()
}

// Counts returns a snapshot of the mutation counters.
func (r *Recorder) Counts() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Total returns the number of mutations recorded.
func (r *Recorder) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, v := range r.counts {
		total += v
	}
	return total
}

// Reset clears the counters.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.counts = make(map[string]int)
	r.mu.Unlock()
}

func (r *Recorder) CreateElement(tag string) *html.Node {
	r.inc(MutCreate)
	return r.API.CreateElement(tag)
}

func (r *Recorder) CreateText(text string) *html.Node {
	r.inc(MutCreate)
	return r.API.CreateText(text)
}

func (r *Recorder) CreateComment(text string) *html.Node {
	r.inc(MutCreate)
	return r.API.CreateComment(text)
}

func (r *Recorder) InsertBefore(parent, child, ref *html.Node) {
	r.inc(MutInsert)
	r.API.InsertBefore(parent, child, ref)
}

func (r *Recorder) AppendChild(parent, child *html.Node) {
	r.inc(MutInsert)
	r.API.AppendChild(parent, child)
}

func (r *Recorder) RemoveChild(parent, child *html.Node) {
	r.inc(MutRemove)
	r.API.RemoveChild(parent, child)
}

func (r *Recorder) SetAttribute(n *html.Node, name, value string) {
	r.inc(MutAttribute)
	r.API.SetAttribute(n, name, value)
}

func (r *Recorder) RemoveAttribute(n *html.Node, name string) {
	r.inc(MutAttribute)
	r.API.RemoveAttribute(n, name)
}

func (r *Recorder) SetTextContent(n *html.Node, text string) {
	r.inc(MutText)
	r.API.SetTextContent(n, text)
}

func (r *Recorder) SetStyle(n *html.Node, name, value string) {
	r.inc(MutStyle)
	r.API.SetStyle(n, name, value)
}
