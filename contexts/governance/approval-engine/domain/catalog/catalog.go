package catalog

type SignalKind string

const (
	SignalApprove     SignalKind = "approve"
	SignalReject      SignalKind = "reject"
	SignalEscalate    SignalKind = "escalate"
	SignalAbstainHold SignalKind = "abstain-hold"
	SignalBless       SignalKind = "bless"
	SignalVeto        SignalKind = "veto"
)

type SentimentTag string

const (
	SentimentEnthusiastic SentimentTag = "enthusiastic"
	SentimentSupportive   SentimentTag = "supportive"
	SentimentNeutral      SentimentTag = "neutral"
	SentimentUrgent       SentimentTag = "urgent"
	SentimentSkeptical    SentimentTag = "skeptical"
	SentimentCritical     SentimentTag = "critical"
	SentimentHostile      SentimentTag = "hostile"
)

type ParticipantRole string

const (
	RolePrivileged ParticipantRole = "privileged"
	RoleStandard   ParticipantRole = "standard"
	RoleGuest      ParticipantRole = "guest"
)

// SignalSpec is one row of the vote-signal catalog: the signed base energy a
// signal contributes before modifiers, and the qualitative sentiment the signal
// itself implies.
type SignalSpec struct {
	Kind       SignalKind
	BaseEnergy float64
	Sentiment  SentimentTag
}

// SentimentModifier scales a participant's declared conviction. Multiplier
// applies to energy magnitude; Bias is recorded on the vote for downstream
// analytics and does not feed the energy formula.
type SentimentModifier struct {
	Tag        SentimentTag
	Multiplier float64
	Bias       float64
}

// Catalog bundles the vote-signal catalog, sentiment modifier table, and
// participant weight table. Loaded once at process start and injected into the
// session engine; never mutated at runtime.
type Catalog struct {
	signals    map[SignalKind]SignalSpec
	sentiments map[SentimentTag]SentimentModifier
	weights    map[ParticipantRole]float64
}

func Default() *Catalog {
	return &Catalog{
		signals: map[SignalKind]SignalSpec{
			SignalApprove:     {Kind: SignalApprove, BaseEnergy: 50, Sentiment: SentimentSupportive},
			SignalReject:      {Kind: SignalReject, BaseEnergy: -50, Sentiment: SentimentCritical},
			SignalEscalate:    {Kind: SignalEscalate, BaseEnergy: 25, Sentiment: SentimentUrgent},
			SignalAbstainHold: {Kind: SignalAbstainHold, BaseEnergy: 0, Sentiment: SentimentNeutral},
			SignalBless:       {Kind: SignalBless, BaseEnergy: 80, Sentiment: SentimentEnthusiastic},
			SignalVeto:        {Kind: SignalVeto, BaseEnergy: -120, Sentiment: SentimentHostile},
		},
		sentiments: map[SentimentTag]SentimentModifier{
			SentimentEnthusiastic: {Tag: SentimentEnthusiastic, Multiplier: 1.5, Bias: 0.3},
			SentimentSupportive:   {Tag: SentimentSupportive, Multiplier: 1.2, Bias: 0.1},
			SentimentNeutral:      {Tag: SentimentNeutral, Multiplier: 1.0, Bias: 0},
			SentimentUrgent:       {Tag: SentimentUrgent, Multiplier: 1.25, Bias: 0.2},
			SentimentSkeptical:    {Tag: SentimentSkeptical, Multiplier: 0.8, Bias: -0.1},
			SentimentCritical:     {Tag: SentimentCritical, Multiplier: 1.2, Bias: -0.2},
			SentimentHostile:      {Tag: SentimentHostile, Multiplier: 1.4, Bias: -0.3},
		},
		weights: map[ParticipantRole]float64{
			RolePrivileged: 2.0,
			RoleStandard:   1.0,
			RoleGuest:      0.5,
		},
	}
}

func (c *Catalog) Signal(kind SignalKind) (SignalSpec, bool) {
	spec, ok := c.signals[kind]
	return spec, ok
}

func (c *Catalog) Sentiment(tag SentimentTag) (SentimentModifier, bool) {
	modifier, ok := c.sentiments[tag]
	return modifier, ok
}

func (c *Catalog) RoleWeight(role ParticipantRole) (float64, bool) {
	weight, ok := c.weights[role]
	return weight, ok
}

func (c *Catalog) ValidRole(role ParticipantRole) bool {
	_, ok := c.weights[role]
	return ok
}
