package game

type PlayerID string

// Player is a value record; change it through the Registry, never by pointer.
type Player struct {
	ID      PlayerID `json:"playerId"`
	Name    string   `json:"name"`
	Ready   bool     `json:"ready"`
	Playing bool     `json:"playing"`
	Score   int      `json:"score"`
}

// Registry tracks connected players in join order.
type Registry struct {
	players map[PlayerID]Player
	order   []PlayerID
}

func NewRegistry() *Registry {
	return &Registry{players: make(map[PlayerID]Player)}
}

// Add inserts a fresh player. It reports false if the id is already known.
func (r *Registry) Add(id PlayerID) bool {
	if _, ok := r.players[id]; ok {
		return false
	}
	r.players[id] = Player{ID: id}
	r.order = append(r.order, id)
	return true
}

func (r *Registry) Get(id PlayerID) (Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

// SetReady marks the player ready under name, creating them if needed.
// Players that are already ready or playing are left untouched.
func (r *Registry) SetReady(id PlayerID, name string) bool {
	r.Add(id)
	p := r.players[id]
	if p.Ready || p.Playing {
		return false
	}
	p.Ready = true
	p.Name = name
	r.players[id] = p
	return true
}

func (r *Registry) Remove(id PlayerID) bool {
	if _, ok := r.players[id]; !ok {
		return false
	}
	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Registry) SetPlaying(id PlayerID) {
	if p, ok := r.players[id]; ok {
		p.Playing = true
		r.players[id] = p
	}
}

// AddScore adds non-negative points and returns the new total.
func (r *Registry) AddScore(id PlayerID, points int) int {
	p, ok := r.players[id]
	if !ok || points <= 0 {
		return p.Score
	}
	p.Score += points
	r.players[id] = p
	return p.Score
}

// ResetRoundFlags clears ready and playing on everyone.
func (r *Registry) ResetRoundFlags() {
	for id, p := range r.players {
		p.Ready = false
		p.Playing = false
		r.players[id] = p
	}
}

func (r *Registry) All() []Player {
	return r.filter(func(Player) bool { return true })
}

func (r *Registry) Ready() []Player {
	return r.filter(func(p Player) bool { return p.Ready })
}

func (r *Registry) Playing() []Player {
	return r.filter(func(p Player) bool { return p.Playing })
}

func (r *Registry) filter(keep func(Player) bool) []Player {
	out := make([]Player, 0, len(r.order))
	for _, id := range r.order {
		if p := r.players[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// AllReady is false for an empty registry.
func (r *Registry) AllReady() bool {
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

func (r *Registry) ReadyCount() int {
	n := 0
	for _, p := range r.players {
		if p.Ready {
			n++
		}
	}
	return n
}

func (r *Registry) PlayingCount() int {
	n := 0
	for _, p := range r.players {
		if p.Playing {
			n++
		}
	}
	return n
}

func (r *Registry) TotalCount() int {
	return len(r.players)
}
