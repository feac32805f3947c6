package wabinary

// Node is a single element of the tree handed to Encode. Content is nil,
// a string, a []byte or a []Node.
type Node struct {
	Tag     string
	Attrs   Attrs
	Content any
}

// Attr is one attribute of a Node
type Attr struct {
	Key   string
	Value string
}

// Attrs keeps attributes in the order they are written on the wire
type Attrs []Attr

// Get returns the value stored under key
func (a Attrs) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing key in place, or appends a new
// attribute at the end
func (a Attrs) Set(key, value string) Attrs {
	for i := range a {
		if a[i].Key == key {
			a[i].Value = value
			return a
		}
	}
	return append(a, Attr{Key: key, Value: value})
}

// Token locates a dictionary string. A nil Dict means the primary
// dictionary, which is written as a single index byte.
type Token struct {
	Dict  *uint8 `yaml:"dict"`
	Index uint8  `yaml:"index"`
}

// PrimaryToken returns a token from the primary dictionary
func PrimaryToken(index uint8) Token {
	return Token{Index: index}
}

// DictToken returns a token from secondary dictionary dict
func DictToken(dict, index uint8) Token {
	return Token{Dict: &dict, Index: index}
}

// Tags holds the tag bytes of the binary grammar. PackedMax is the longest
// string eligible for nibble or hex packing.
type Tags struct {
	ListEmpty   uint8 `yaml:"LIST_EMPTY"`
	List8       uint8 `yaml:"LIST_8"`
	List16      uint8 `yaml:"LIST_16"`
	Binary8     uint8 `yaml:"BINARY_8"`
	Binary20    uint8 `yaml:"BINARY_20"`
	Binary32    uint8 `yaml:"BINARY_32"`
	JIDPair     uint8 `yaml:"JID_PAIR"`
	ADJID       uint8 `yaml:"AD_JID"`
	Nibble8     uint8 `yaml:"NIBBLE_8"`
	Hex8        uint8 `yaml:"HEX_8"`
	Dictionary0 uint8 `yaml:"DICTIONARY_0"`
	PackedMax   int   `yaml:"PACKED_MAX"`
}

// DefaultTags returns the tag values used by the production protocol
func DefaultTags() Tags {
	return Tags{
		ListEmpty:   0,
		Dictionary0: 236,
		ADJID:       247,
		List8:       248,
		List16:      249,
		JIDPair:     250,
		Hex8:        251,
		Binary8:     252,
		Binary20:    253,
		Binary32:    254,
		Nibble8:     255,
		PackedMax:   127,
	}
}

// Tables is everything the encoder needs to know about the grammar. It is
// only ever read, so one Tables may back any number of concurrent encodes.
type Tables struct {
	Tags   Tags
	Tokens map[string]Token
}

// JID is a decoded protocol address. Device and DomainType are nil when
// the address does not carry them.
type JID struct {
	User       string
	Server     string
	DomainType *uint8
	Device     *uint8
}
