package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/fairwaylabs/sgrid/internal/course"
	"github.com/fairwaylabs/sgrid/pkg/core"
)

// DefaultCourseCapacity bounds the number of parsed courses kept.
const DefaultCourseCapacity = 64

type courseKey [sha256.Size]byte

// CourseCache keeps parsed courses keyed by their GeoJSON body and CRS so that
// repeated requests for the same hole skip parsing and projection.
// The oldest entry is evicted once capacity is reached.
type CourseCache struct {
	m        sync.Mutex
	capacity int
	courses  map[courseKey]*course.Course
	order    []courseKey
	hits     SafeCounter
	misses   SafeCounter
}

func NewCourseCache(capacity int) *CourseCache {
	if capacity <= 0 {
		capacity = DefaultCourseCapacity
	}
	return &CourseCache{
		capacity: capacity,
		courses:  make(map[courseKey]*course.Course),
	}
}

func keyFor(data []byte, crs core.CRS) courseKey {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(crs))
	h.Write(buf[:])
	h.Write(data)

	var k courseKey
	copy(k[:], h.Sum(nil))
	return k
}

// Parse returns the cached course for data, parsing and storing it on a miss.
// Parse errors are not cached.
func (c *CourseCache) Parse(data []byte, crs core.CRS) (*course.Course, error) {
	k := keyFor(data, crs)

	c.m.Lock()
	if cached, ok := c.courses[k]; ok {
		c.m.Unlock()
		c.hits.Inc()
		return cached, nil
	}
	c.m.Unlock()
	c.misses.Inc()

	parsed, err := course.Parse(data, crs)
	if err != nil {
		return nil, err
	}

	c.m.Lock()
	defer c.m.Unlock()
	if _, ok := c.courses[k]; !ok {
		if len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.courses, oldest)
		}
		c.order = append(c.order, k)
	}
	c.courses[k] = parsed
	return parsed, nil
}

func (c *CourseCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.courses)
}

// Reset drops every cached course. Hit and miss counts are kept.
func (c *CourseCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.courses = make(map[courseKey]*course.Course)
	c.order = nil
}

// Stats returns the hit and miss counts.
func (c *CourseCache) Stats() (hits, misses int) {
	return c.hits.Value(), c.misses.Value()
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v++
}
