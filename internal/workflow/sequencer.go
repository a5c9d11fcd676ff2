package workflow

import "github.com/jbirchohio/NestMapRepo-sub002/internal/models"

// Sequencer drives progression through the ordered workflow steps.
// Indices are always clamped: advancing at the last step or retreating
// at the first is a safe no-op, never a failure.
type Sequencer struct {
	steps   []models.Step
	index   int
	visited map[models.Step]bool
}

func NewSequencer() *Sequencer {
	steps := models.WorkflowSteps()
	return &Sequencer{
		steps:   steps,
		visited: map[models.Step]bool{steps[0]: true},
	}
}

// Current returns the active step.
func (s *Sequencer) Current() models.Step {
	return s.steps[s.index]
}

// Advance moves one step forward and returns the new current step.
func (s *Sequencer) Advance() models.Step {
	if s.index < len(s.steps)-1 {
		s.index++
		s.visited[s.steps[s.index]] = true
	}
	return s.Current()
}

// Retreat moves one step back and returns the new current step.
func (s *Sequencer) Retreat() models.Step {
	if s.index > 0 {
		s.index--
	}
	return s.Current()
}

// JumpBack moves directly to an already-visited step at or before the
// current position. Forward jumps and unknown steps are refused.
func (s *Sequencer) JumpBack(step models.Step) bool {
	for i := 0; i <= s.index; i++ {
		if s.steps[i] == step && s.visited[step] {
			s.index = i
			return true
		}
	}
	return false
}

// IsLast reports whether the terminal step is active.
func (s *Sequencer) IsLast() bool {
	return s.index == len(s.steps)-1
}

// Progress returns completion as a percentage of steps entered.
func (s *Sequencer) Progress() float64 {
	return float64(s.index+1) / float64(len(s.steps)) * 100
}

// Visited returns the steps entered so far, in workflow order.
func (s *Sequencer) Visited() []models.Step {
	out := make([]models.Step, 0, len(s.visited))
	for _, st := range s.steps {
		if s.visited[st] {
			out = append(out, st)
		}
	}
	return out
}

// Restore positions the sequencer from persisted state. An unknown step
// leaves the sequencer at the initial step.
func (s *Sequencer) Restore(current models.Step, visited []models.Step) {
	for _, st := range visited {
		s.visited[st] = true
	}
	for i, st := range s.steps {
		if st == current {
			s.index = i
			s.visited[st] = true
			return
		}
	}
}
