package article

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

// Track marks which collection pass produced a candidate.
type Track int

const (
	TrackGeneral Track = iota
	TrackTopic
)

func (t Track) String() string {
	if t == TrackTopic {
		return "topic"
	}
	return "general"
}

// Candidate is one news item moving through the pipeline. RawLink is the
// aggregator URL as seen in the feed; Link is only set once resolution
// produced a publisher URL.
type Candidate struct {
	Track    Track
	Keyword  string
	Press    string
	Title    string
	RawLink  string
	Link     string
	Published time.Time
	Snippet  string
	Score    int

	// Embedded holds publisher URLs found inside the feed entry itself
	// (alternate links, URLs in the description). The resolver checks these
	// before going to the network.
	Embedded []string
}

// Key is the dedup identity: two candidates with the same title and resolved
// link are the same article regardless of which keyword surfaced them.
func (c *Candidate) Key() string {
	h := sha1.New()
	h.Write([]byte(strings.ToLower(c.Title) + "|" + c.Link))
	return hex.EncodeToString(h.Sum(nil))
}
