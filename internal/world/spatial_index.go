package world

import "sort"

// bucketKey is the coarse grid cell a position hashes to.
type bucketKey struct {
	BX, BY int
}

// SpatialIndex is a bucket-hash over agent positions. Bucket size is fixed
// at construction to max(vision_radius, interaction_radius) across the
// scenario's agents, so a radius query touches a small, bounded number of
// buckets. The index is append-only: agents never disappear mid-run, so
// there is no removal path, only Add and Update.
type SpatialIndex struct {
	bucketSize int
	buckets    map[bucketKey][]AgentID
	posOf      map[AgentID]Position
}

// NewSpatialIndex constructs an index with the given bucket size. bucketSize
// must be at least 1.
func NewSpatialIndex(bucketSize int) *SpatialIndex {
	if bucketSize < 1 {
		bucketSize = 1
	}
	return &SpatialIndex{
		bucketSize: bucketSize,
		buckets:    make(map[bucketKey][]AgentID),
		posOf:      make(map[AgentID]Position),
	}
}

func (s *SpatialIndex) key(pos Position) bucketKey {
	return bucketKey{BX: floorDiv(pos.X, s.bucketSize), BY: floorDiv(pos.Y, s.bucketSize)}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Add inserts a new agent at pos. Calling Add twice for the same id
// duplicates it; callers must only call it once per agent's lifetime.
func (s *SpatialIndex) Add(id AgentID, pos Position) {
	k := s.key(pos)
	s.buckets[k] = append(s.buckets[k], id)
	s.posOf[id] = pos
}

// Update moves an already-indexed agent to a new position.
func (s *SpatialIndex) Update(id AgentID, newPos Position) {
	old, ok := s.posOf[id]
	if !ok {
		s.Add(id, newPos)
		return
	}
	if old == newPos {
		return
	}
	oldKey := s.key(old)
	bucket := s.buckets[oldKey]
	for i, v := range bucket {
		if v == id {
			bucket[i] = bucket[len(bucket)-1]
			s.buckets[oldKey] = bucket[:len(bucket)-1]
			break
		}
	}
	newKey := s.key(newPos)
	s.buckets[newKey] = append(s.buckets[newKey], id)
	s.posOf[id] = newPos
}

// QueryRadius returns, in ascending id order, every indexed agent within
// Manhattan distance radius of center (center's own occupant included if
// within radius).
func (s *SpatialIndex) QueryRadius(center Position, radius int) []AgentID {
	bucketRadius := radius/s.bucketSize + 1
	cKey := s.key(center)
	var out []AgentID
	for by := cKey.BY - bucketRadius; by <= cKey.BY+bucketRadius; by++ {
		for bx := cKey.BX - bucketRadius; bx <= cKey.BX+bucketRadius; bx++ {
			for _, id := range s.buckets[bucketKey{BX: bx, BY: by}] {
				if Dist(s.posOf[id], center) <= radius {
					out = append(out, id)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PositionOf returns the last known position of id.
func (s *SpatialIndex) PositionOf(id AgentID) (Position, bool) {
	p, ok := s.posOf[id]
	return p, ok
}
