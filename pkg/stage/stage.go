package stage

import (
	"math"

	"github.com/pkg/errors"

	"github.com/jpfielding/dcmview.go/pkg/event"
)

type callbackKey struct {
	eventType event.Type
	target    *LayerGroup
}

// Stage owns an ordered collection of layer groups and the active binders,
// and wires N-way event propagation between them.
//
// For every ordered pair (source, peer) and every binder, the stage listens
// on the source for the binder's event type and applies the translation to
// the peer. Applying a change to the peer makes the peer fire its own
// instance of the same event; to keep that echo from propagating back and
// oscillating, the peer's own outbound synchronization listeners are removed
// for the duration of the synchronous apply and re-registered afterwards.
type Stage struct {
	groups  []*LayerGroup
	binders []Binder
	bound   bool

	// callbacks are memoized per (event type, peer) so repeated bind/unbind
	// cycles reuse identical references.
	callbacks map[callbackKey]event.Listener

	// subs records the listener handles the stage installed on each group,
	// by event type; suspension removes exactly these.
	subs map[*LayerGroup]map[event.Type][]event.ListenerID
}

// NewStage creates an empty stage.
func NewStage() *Stage {
	return &Stage{
		callbacks: map[callbackKey]event.Listener{},
		subs:      map[*LayerGroup]map[event.Type][]event.ListenerID{},
	}
}

// NumLayerGroups returns the number of registered layer groups.
func (s *Stage) NumLayerGroups() int { return len(s.groups) }

// GetLayerGroup returns the layer group at the registration position,
// nil when out of range. Order defines addressing only; synchronization is
// symmetric across all pairs.
func (s *Stage) GetLayerGroup(i int) *LayerGroup {
	if i < 0 || i >= len(s.groups) {
		return nil
	}
	return s.groups[i]
}

// AddLayerGroup registers a layer group. On a bound stage the wiring is torn
// down and rebuilt so the new group participates symmetrically.
func (s *Stage) AddLayerGroup(g *LayerGroup) {
	if s.bound {
		s.Unbind()
		s.groups = append(s.groups, g)
		s.Bind()
		return
	}
	s.groups = append(s.groups, g)
}

// Binders returns the active binder list.
func (s *Stage) Binders() []Binder { return s.binders }

// SetBinders replaces the active binder configuration. A nil list is
// rejected; an empty list is valid and disables synchronization. Re-setting
// binders while bound unbinds the previous configuration first.
func (s *Stage) SetBinders(binders []Binder) error {
	if binders == nil {
		return errors.New("binders must not be nil")
	}
	wasBound := s.bound
	if wasBound {
		s.Unbind()
	}
	s.binders = binders
	s.callbacks = map[callbackKey]event.Listener{}
	if wasBound {
		s.Bind()
	}
	return nil
}

// Bind installs the pairwise synchronization wiring. With fewer than two
// groups or no binders the stage is bound but no listeners are installed.
func (s *Stage) Bind() {
	if s.bound {
		return
	}
	s.bound = true
	if len(s.groups) < 2 || len(s.binders) == 0 {
		return
	}
	for _, b := range s.binders {
		for _, peer := range s.groups {
			cb := s.callback(b, peer)
			for _, src := range s.groups {
				if src == peer {
					continue
				}
				s.register(src, b.EventType(), cb)
			}
		}
	}
}

// Unbind removes every listener the stage installed.
func (s *Stage) Unbind() {
	for g, byType := range s.subs {
		for t, ids := range byType {
			for _, id := range ids {
				g.Events().Off(t, id)
			}
		}
	}
	s.subs = map[*LayerGroup]map[event.Type][]event.ListenerID{}
	s.bound = false
}

// Reset tears down the wiring and empties the stage.
func (s *Stage) Reset() {
	s.Unbind()
	s.groups = nil
	s.binders = nil
	s.callbacks = map[callbackKey]event.Listener{}
}

// callback returns the memoized forwarding callback applying binder b to
// peer. Stable references let unbind remove exactly what bind installed.
func (s *Stage) callback(b Binder, peer *LayerGroup) event.Listener {
	key := callbackKey{eventType: b.EventType(), target: peer}
	if cb, ok := s.callbacks[key]; ok {
		return cb
	}
	cb := func(ev event.Event) {
		// Swallow the echo at the peer that is about to cause it: the apply
		// below makes peer fire its own event of this type, and peer's
		// outbound listeners must not forward it. Removal is purely
		// structural; dispatch is synchronous and single-threaded.
		s.suspend(peer, b.EventType())
		b.Apply(ev, peer)
		s.resume(peer, b)
	}
	s.callbacks[key] = cb
	return cb
}

func (s *Stage) register(g *LayerGroup, t event.Type, cb event.Listener) {
	id := g.Events().On(t, cb)
	byType, ok := s.subs[g]
	if !ok {
		byType = map[event.Type][]event.ListenerID{}
		s.subs[g] = byType
	}
	byType[t] = append(byType[t], id)
}

// suspend removes every synchronization listener the stage installed on g
// for event type t, across all of g's peers.
func (s *Stage) suspend(g *LayerGroup, t event.Type) {
	byType, ok := s.subs[g]
	if !ok {
		return
	}
	for _, id := range byType[t] {
		g.Events().Off(t, id)
	}
	delete(byType, t)
}

// resume re-registers the forwarding listeners suspend removed: one per peer
// of g, reusing the memoized callbacks.
func (s *Stage) resume(g *LayerGroup, b Binder) {
	for _, peer := range s.groups {
		if peer == g {
			continue
		}
		s.register(g, b.EventType(), s.callback(b, peer))
	}
}

// SyncLayerGroupScale queries each group's fit scale and applies the minimum
// to every group that produced one, so multi-viewport layouts share a common
// zoom level regardless of individual image pixel dimensions.
func (s *Stage) SyncLayerGroupScale() {
	min := math.Inf(1)
	any := false
	for _, g := range s.groups {
		if fs, ok := g.FitScale(); ok {
			any = true
			if fs < min {
				min = fs
			}
		}
	}
	if !any {
		return
	}
	for _, g := range s.groups {
		if _, ok := g.FitScale(); ok {
			g.SetScale(min)
		}
	}
}
