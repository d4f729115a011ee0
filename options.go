package crate

// config holds settings shared by RecordEncoder and RecordDecoder.
type config struct {
	archiver *Archiver
	namer    Namer
	userInfo map[UserInfoKey]any
}

// Option configures a RecordEncoder or RecordDecoder.
type Option func(*config)

// WithArchiver sets the archiver for the system-fields blob.
// Encoder and decoder must agree on it for blobs to round-trip.
func WithArchiver(a *Archiver) Option {
	return func(c *config) {
		c.archiver = a
	}
}

// WithNamer sets how the default factory names new records.
func WithNamer(n Namer) Option {
	return func(c *config) {
		c.namer = n
	}
}

// WithUserInfo exposes value to RecordMarshaler and RecordUnmarshaler
// implementations through the coordinator's UserInfo.
func WithUserInfo(key UserInfoKey, value any) Option {
	return func(c *config) {
		if c.userInfo == nil {
			c.userInfo = make(map[UserInfoKey]any)
		}
		c.userInfo[key] = value
	}
}

func newConfig(opts []Option) config {
	c := config{
		archiver: DefaultArchiver(),
		namer:    UUIDNamer,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.archiver == nil {
		c.archiver = DefaultArchiver()
	}
	if c.namer == nil {
		c.namer = UUIDNamer
	}
	return c
}

// coordinatorState tracks the one container a coordinator may hand out.
// There is no way back to stateUninitialized.
type coordinatorState uint8

const (
	stateUninitialized coordinatorState = iota
	stateContainerRequested
)
