package world

// ClaimMap is the global resource-claim table. At most one agent may claim a
// given position at a time; claims are cleared by the decision system's
// stale-claim sweep, never by the claimant directly finishing a harvest.
type ClaimMap struct {
	owner map[Position]AgentID
}

// NewClaimMap constructs an empty claim map.
func NewClaimMap() *ClaimMap {
	return &ClaimMap{owner: make(map[Position]AgentID)}
}

// Claim records agent as the claimant of pos, overwriting any prior
// claimant. Callers are responsible for checking OwnerAt first if exclusive
// claiming is required.
func (c *ClaimMap) Claim(pos Position, agent AgentID) {
	c.owner[pos] = agent
}

// Release drops any claim on pos.
func (c *ClaimMap) Release(pos Position) {
	delete(c.owner, pos)
}

// OwnerAt returns the claimant of pos, if any.
func (c *ClaimMap) OwnerAt(pos Position) (AgentID, bool) {
	id, ok := c.owner[pos]
	return id, ok
}

// Positions returns every currently-claimed position. Order is unspecified;
// callers that need determinism must sort.
func (c *ClaimMap) Positions() []Position {
	out := make([]Position, 0, len(c.owner))
	for p := range c.owner {
		out = append(out, p)
	}
	return out
}
