package entity

// FPSWindow is the number of samples kept for the rolling average
const FPSWindow = 60

// FrameStats keeps the most recent FPS samples in a ring
type FrameStats struct {
	samples [FPSWindow]float64
	n       int
	next    int
}

// Push records one sample, evicting the oldest once the window is full
func (s *FrameStats) Push(fps float64) {
	s.samples[s.next] = fps
	s.next = (s.next + 1) % FPSWindow
	if s.n < FPSWindow {
		s.n++
	}
}

// Average is the mean of the samples in the window, 0 when empty
func (s *FrameStats) Average() float64 {
	if s.n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < s.n; i++ {
		sum += s.samples[i]
	}
	return sum / float64(s.n)
}

func (s *FrameStats) Len() int { return s.n }
