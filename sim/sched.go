package sim

import (
	"sync"

	"pitclock/core"
)

// Priority and niceness ranges of the feedback scheduler
const (
	PriMin     = 0
	PriDefault = 31
	PriMax     = 63
	NiceMin    = -20
	NiceMax    = 20

	timeSlice = 4 // Ticks a thread runs before round-robin preemption
)

// ThreadSpec describes a simulated thread
type ThreadSpec struct {
	Name string `yaml:"name"`
	Nice int    `yaml:"nice"`
}

type thread struct {
	name      string
	nice      int
	priority  int
	recentCPU fixed
	ticks     int64
}

// ThreadInfo is a snapshot of one thread's scheduling state
type ThreadInfo struct {
	Name      string
	Nice      int
	Priority  int
	RecentCPU float64
	Ticks     int64
}

// HookCounts counts scheduler calls made by the tick handler
type HookCounts struct {
	Ticks      uint64
	Increments uint64
	Priority   uint64
	LoadAvg    uint64
	All        uint64
}

// Scheduler is a model of a multi-level feedback queue scheduler.
// It implements core.Scheduler and core.FeedbackScheduler. Threads never
// block, so every thread is ready.
type Scheduler struct {
	mu sync.Mutex

	feedback bool
	threads  []*thread
	current  int // Index into threads, -1 when idle
	slice    int
	loadAvg  fixed
	idle     int64
	counts   HookCounts
}

var (
	_ core.Scheduler         = (*Scheduler)(nil)
	_ core.FeedbackScheduler = (*Scheduler)(nil)
)

// NewScheduler creates a scheduler running specs in order
func NewScheduler(feedback bool, specs ...ThreadSpec) *Scheduler {
	s := &Scheduler{feedback: feedback, current: -1}
	for _, spec := range specs {
		s.threads = append(s.threads, &thread{
			name:     spec.Name,
			nice:     clamp(spec.Nice, NiceMin, NiceMax),
			priority: PriDefault,
		})
	}
	if len(s.threads) > 0 {
		s.current = 0
	}
	return s
}

// SetFeedback switches between round-robin and feedback scheduling
func (s *Scheduler) SetFeedback(enabled bool) {
	s.mu.Lock()
	s.feedback = enabled
	s.mu.Unlock()
}

// FeedbackEnabled reports whether feedback scheduling is active
func (s *Scheduler) FeedbackEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedback
}

// Tick charges one tick to the running thread and preempts it at the end
// of its time slice
func (s *Scheduler) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts.Ticks++
	if s.current < 0 {
		s.idle++
		return
	}
	s.threads[s.current].ticks++
	s.slice++
	if s.slice >= timeSlice {
		s.slice = 0
		s.current = s.next()
	}
}

// next picks the highest-priority thread, taking ties in round-robin
// order after the running one
func (s *Scheduler) next() int {
	best := -1
	for i := 1; i <= len(s.threads); i++ {
		idx := (s.current + i) % len(s.threads)
		if best < 0 || s.threads[idx].priority > s.threads[best].priority {
			best = idx
		}
	}
	return best
}

// Current returns the running thread, or nil when idle
func (s *Scheduler) Current() core.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < 0 {
		return nil
	}
	return s.threads[s.current]
}

// Increment charges the running thread's recent CPU
func (s *Scheduler) Increment() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts.Increments++
	if s.current >= 0 {
		s.threads[s.current].recentCPU += fixedOne
	}
}

// RecomputePriority sets priority = PriMax - recent_cpu/4 - nice*2
func (s *Scheduler) RecomputePriority(t core.Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts.Priority++
	if th, ok := t.(*thread); ok && th != nil {
		updatePriority(th)
	}
}

// RecomputeLoadAvg sets load_avg = 59/60*load_avg + 1/60*ready
func (s *Scheduler) RecomputeLoadAvg() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts.LoadAvg++
	ready := toFixed(len(s.threads))
	s.loadAvg = toFixed(59).div(toFixed(60)).mul(s.loadAvg) + ready/60
}

// RecomputeAll decays every thread's recent CPU by the load average and
// recomputes its priority
func (s *Scheduler) RecomputeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts.All++
	twice := 2 * s.loadAvg
	coefficient := twice.div(twice + fixedOne)
	for _, th := range s.threads {
		th.recentCPU = coefficient.mul(th.recentCPU) + toFixed(th.nice)
		updatePriority(th)
	}
}

func updatePriority(th *thread) {
	p := toFixed(PriMax) - th.recentCPU/4 - toFixed(th.nice*2)
	th.priority = clamp(p.trunc(), PriMin, PriMax)
}

// LoadAvg returns the system load average
func (s *Scheduler) LoadAvg() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAvg.float()
}

// Threads returns a snapshot of every thread
func (s *Scheduler) Threads() []ThreadInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ThreadInfo, len(s.threads))
	for i, th := range s.threads {
		out[i] = ThreadInfo{
			Name:      th.name,
			Nice:      th.nice,
			Priority:  th.priority,
			RecentCPU: th.recentCPU.float(),
			Ticks:     th.ticks,
		}
	}
	return out
}

// Counts returns the number of hook calls so far
func (s *Scheduler) Counts() HookCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

// IdleTicks returns ticks spent with no thread to run
func (s *Scheduler) IdleTicks() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idle
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
