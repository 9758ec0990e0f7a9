package arena

import (
	"context"
	"fmt"

	"gennsing/internal/agent"
	"gennsing/internal/scape"
)

// Teach replays every decision the teacher made, in order, as a sharpened
// target for each student. Each student commits its gradients once, at the
// rate its ledger against the teacher dictates, and is saved. Nil students
// means every pool member except the teacher.
func (m *Manager) Teach(ctx context.Context, teacher agent.Agent, students []*agent.AI) error {
	if students == nil {
		used, err := m.NamesUsed(ctx)
		if err != nil {
			return err
		}
		for _, name := range used {
			if name == teacher.Name() {
				continue
			}
			ai, err := m.AI(ctx, name)
			if err != nil {
				return err
			}
			students = append(students, ai)
		}
	}

	decisions := teacher.Decisions()
	for i, d := range decisions {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := d.Clarified(m.cfg.Certainty)
		if err != nil {
			return fmt.Errorf("teach decision %d of %s: %w", i, teacher.Name(), err)
		}
		for _, student := range students {
			if err := student.Learn(target); err != nil {
				return fmt.Errorf("teach %s decision %d: %w", student.Name(), i, err)
			}
		}
	}

	for _, student := range students {
		rate, err := m.records.LearningRate(ctx, teacher.Name(), student.Name())
		if err != nil {
			return err
		}
		student.Brain().Update(rate)
		if err := m.store.SaveBrain(ctx, student.Brain().Record(student.Name())); err != nil {
			return fmt.Errorf("save student %s: %w", student.Name(), err)
		}
		m.logger.Debug("student updated", "teacher", teacher.Name(), "student", student.Name(), "rate", rate)
	}
	m.logger.Info("teaching done", "teacher", teacher.Name(), "decisions", len(decisions), "students", len(students))
	return nil
}

// Autoplay runs the game to completion and finalizes it. progress, when set,
// receives the completion after every round.
func Autoplay(ctx context.Context, game scape.Game, progress func(float64)) error {
	for game.Completion() < 100 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := game.DoRound(ctx); err != nil {
			return err
		}
		if progress != nil {
			progress(min(game.Completion(), 100))
		}
	}
	return game.Finalize(ctx)
}
