package keyspacetesting

import (
	"math/rand"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/forestrie/go-orderkey/keyspace"
	"github.com/forestrie/go-orderkey/orderkey"
)

type TestContext struct {
	Log   logger.Logger
	Store *keyspace.MemoryBlobStore
	T     *testing.T
	rng   *rand.Rand
}

type TestConfig struct {
	// We seed the RNG with Seed. It is normal to force it to some fixed value
	// so that the generated ids and positions are the same from run to run.
	Seed            int64
	TestLabelPrefix string
	LogLevel        string // defaults to "NOOP"
}

func NewTestContext(t *testing.T, cfg TestConfig) TestContext {
	level := cfg.LogLevel
	if level == "" {
		level = "NOOP"
	}
	logger.New(level)

	c := TestContext{
		T:     t,
		Store: keyspace.NewMemoryBlobStore(),
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}
	c.Log = logger.Sugar.WithServiceName(cfg.TestLabelPrefix)
	return c
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

// NewID returns a uuid drawn from the seeded RNG.
func (c *TestContext) NewID() uuid.UUID {
	id, err := uuid.NewRandomFromReader(c.rng)
	require.NoError(c.T, err)
	return id
}

// NewSpace returns a space for a fresh parent whose item ids come from the
// seeded RNG.
func (c *TestContext) NewSpace(opts ...keyspace.Option) *keyspace.Space {
	opts = append([]keyspace.Option{keyspace.WithIDSource(c.NewID)}, opts...)
	return keyspace.NewSpace(c.Log, c.NewID(), opts...)
}

// Populate inserts n items into the space, each at a random position: the
// start, the end, or after a randomly chosen existing item.
func (c *TestContext) Populate(s *keyspace.Space, n int) {
	for i := 0; i < n; i++ {
		var err error
		items := s.Ordered()
		switch {
		case len(items) == 0 || c.rng.Intn(4) == 0:
			_, err = s.InsertAtEnd()
		case c.rng.Intn(3) == 0:
			_, err = s.InsertAtStart()
		default:
			_, err = s.InsertAfter(items[c.rng.Intn(len(items))].ID)
		}
		require.NoError(c.T, err)
	}
}

// RequireStrictlyOrdered fails the test unless every key in the space is
// distinct and Ordered returns them ascending.
func (c *TestContext) RequireStrictlyOrdered(s *keyspace.Space) {
	items := s.Ordered()
	for i := 1; i < len(items); i++ {
		require.Equal(c.T, -1, orderkey.Compare(items[i-1].Key, items[i].Key),
			"items %d and %d: %v %v", i-1, i, items[i-1].Key, items[i].Key)
	}
}
