package metrics

// CollisionRate is the mean number of collisions per simulation step.
type CollisionRate struct {
	name       string
	collisions int64
	lastStep   int
}

func NewCollisionRate() *CollisionRate {
	return &CollisionRate{name: "collision_rate"}
}

func (c *CollisionRate) Name() string { return c.name }

func (c *CollisionRate) Observe(s Sample) {
	c.collisions++
	if s.Step > c.lastStep {
		c.lastStep = s.Step
	}
}

func (c *CollisionRate) Value() float64 {
	if c.lastStep == 0 {
		return 0
	}
	return float64(c.collisions) / float64(c.lastStep)
}

func (c *CollisionRate) Reset() {
	c.collisions = 0
	c.lastStep = 0
}

// Saturation is the fraction of collisions after which at least one disk
// holds the full capacity.
type Saturation struct {
	name      string
	capacity  int
	saturated int
	samples   int
}

func NewSaturation(capacity int) *Saturation {
	return &Saturation{name: "saturation", capacity: capacity}
}

func (s *Saturation) Name() string { return s.name }

func (s *Saturation) Observe(sample Sample) {
	s.samples++
	for _, d := range sample.Disks {
		if d.Energy >= s.capacity {
			s.saturated++
			break
		}
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}
