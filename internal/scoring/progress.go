package scoring

import "github.com/roach88/adherence/internal/model"

// gatedTasks are the daytime support tasks that count toward progress. Bed
// time is excluded: it is logged after the day's work is reviewed.
var gatedTasks = []string{
	model.SupportWake,
	model.SupportWater,
	model.SupportGym,
	model.SupportWalkingLunch,
	model.SupportWalkingDinner,
	model.SupportPsyllium,
}

// RequiredTasks lists the progress-gating task ids for p, including coffee
// when p makes it eligible.
func RequiredTasks(p *model.Protocol) []string {
	if p == nil {
		return nil
	}
	tasks := append([]string(nil), gatedTasks...)
	if p.Has(model.SupportCoffee) {
		tasks = append(tasks, model.SupportCoffee)
	}
	return tasks
}

// Progress returns the floor percentage of required tasks marked done. 100
// when nothing is required.
func Progress(p *model.Protocol, support model.SupportLog) int {
	tasks := RequiredTasks(p)
	if len(tasks) == 0 {
		return 100
	}
	done := 0
	for _, id := range tasks {
		if id == model.SupportWake {
			if support.Sleep.WakeTime != "" {
				done++
			}
			continue
		}
		if r, ok := support.Record(id); ok && r.Status.Done() {
			done++
		}
	}
	return done * 100 / len(tasks)
}
