package game

// Inbound is an event consumed by a Session.
type Inbound interface {
	inbound()
}

type PlayerJoined struct {
	ID PlayerID
}

type PlayerReady struct {
	ID   PlayerID
	Name string
}

type GuessSubmitted struct {
	ID   PlayerID
	Text string
}

// TimerUpdate carries the seconds left in the round identified by RoundID.
type TimerUpdate struct {
	RoundID   uint64
	Remaining int
}

type PlayerLeft struct {
	ID PlayerID
}

func (PlayerJoined) inbound()   {}
func (PlayerReady) inbound()    {}
func (GuessSubmitted) inbound() {}
func (TimerUpdate) inbound()    {}
func (PlayerLeft) inbound()     {}

// Outbound event kinds, used as the wire message type.
const (
	KindNewRound          = "new-round"
	KindNewClue           = "new-clue"
	KindGuessCorrect      = "guess-correct"
	KindGuessWrong        = "guess-wrong"
	KindGuessClose        = "guess-close"
	KindAlreadyGuessed    = "already-guessed"
	KindScoreUpdate       = "score-update"
	KindRoundEnd          = "round-end"
	KindWaiting           = "waiting"
	KindWaitingForPlayers = "waiting-for-players"
	KindGameInProgress    = "game-in-progress"
)

// Event is an outbound notification. Its JSON encoding is the payload.
type Event interface {
	Kind() string
}

// Notifier delivers events to the room's participants.
type Notifier interface {
	Broadcast(ev Event)
	Send(to PlayerID, ev Event)
}

type NewRound struct {
	RoundID    uint64   `json:"roundId"`
	Clue       string   `json:"clue"`
	TimeLeft   int      `json:"timeLeft"`
	Word       string   `json:"word,omitempty"` // drawer's copy only
	DrawerID   PlayerID `json:"drawerId"`
	DrawerName string   `json:"drawerName"`
}

type NewClue struct {
	Clue       string `json:"clue"`
	CluesGiven int    `json:"cluesGiven"`
}

type GuessCorrect struct {
	Player string `json:"player"`
}

type GuessWrong struct {
	Player  string `json:"player"`
	Guess   string `json:"guess"`
	Message string `json:"message"`
}

type GuessClose struct {
	Distance int `json:"distance"`
}

type AlreadyGuessed struct{}

type ScoreUpdate []Standing

type EndReason string

const (
	EndAllGuessed  EndReason = "all-guessed"
	EndTimeUp      EndReason = "time-up"
	EndPlayersLeft EndReason = "players-left"
	EndDrawerLeft  EndReason = "drawer-left"
)

type RoundEnd struct {
	Word   string    `json:"word"`
	Reason EndReason `json:"reason"`
}

type Waiting struct{}

type WaitingForPlayers struct {
	ReadyCount   int `json:"readyCount"`
	TotalPlayers int `json:"totalPlayers"`
}

type GameInProgress struct{}

func (NewRound) Kind() string          { return KindNewRound }
func (NewClue) Kind() string           { return KindNewClue }
func (GuessCorrect) Kind() string      { return KindGuessCorrect }
func (GuessWrong) Kind() string        { return KindGuessWrong }
func (GuessClose) Kind() string        { return KindGuessClose }
func (AlreadyGuessed) Kind() string    { return KindAlreadyGuessed }
func (ScoreUpdate) Kind() string       { return KindScoreUpdate }
func (RoundEnd) Kind() string          { return KindRoundEnd }
func (Waiting) Kind() string           { return KindWaiting }
func (WaitingForPlayers) Kind() string { return KindWaitingForPlayers }
func (GameInProgress) Kind() string    { return KindGameInProgress }
