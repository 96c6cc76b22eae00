package model

// OrientationCategoryThreshold is how many distinct tasks complete a category.
const OrientationCategoryThreshold = 2

// CategoryProgress records which task IDs a user completed in one category.
type CategoryProgress struct {
	CompletedTasks []int64 `json:"completedTasks"`
	IsCompleted    bool    `json:"isCompleted"`
}

// OrientationStatus is the per-user onboarding state, stored as a JSON column
// on the user row. Values are immutable: mutating operations return a new
// status and the caller persists it.
type OrientationStatus struct {
	Main             CategoryProgress `json:"main"`
	Social           CategoryProgress `json:"social"`
	Surveys          CategoryProgress `json:"surveys"`
	Testing          CategoryProgress `json:"testing"`
	AI               CategoryProgress `json:"ai"`
	OverallCompleted bool             `json:"overallCompleted"`
}

// NewOrientationStatus returns the all-incomplete state assigned at
// registration.
func NewOrientationStatus() OrientationStatus {
	empty := CategoryProgress{CompletedTasks: []int64{}}
	return OrientationStatus{
		Main:    empty,
		Social:  empty,
		Surveys: empty,
		Testing: empty,
		AI:      empty,
	}
}

// Progress returns the progress for one category. Unknown categories report
// empty progress; callers validate categories before recording.
func (s OrientationStatus) Progress(c Category) CategoryProgress {
	switch c {
	case CategoryMain:
		return s.Main
	case CategorySocial:
		return s.Social
	case CategorySurveys:
		return s.Surveys
	case CategoryTesting:
		return s.Testing
	case CategoryAI:
		return s.AI
	}
	return CategoryProgress{}
}

func (s OrientationStatus) withProgress(c Category, p CategoryProgress) OrientationStatus {
	switch c {
	case CategoryMain:
		s.Main = p
	case CategorySocial:
		s.Social = p
	case CategorySurveys:
		s.Surveys = p
	case CategoryTesting:
		s.Testing = p
	case CategoryAI:
		s.AI = p
	}
	return s
}

// RecordCompletion adds taskID to the category's completed set and recomputes
// the derived flags. Idempotent: recording the same task twice, or recording
// into an already-complete category, changes nothing and never errors.
func (s OrientationStatus) RecordCompletion(c Category, taskID int64) OrientationStatus {
	p := s.Progress(c)
	for _, id := range p.CompletedTasks {
		if id == taskID {
			return s
		}
	}

	tasks := make([]int64, 0, len(p.CompletedTasks)+1)
	tasks = append(tasks, p.CompletedTasks...)
	tasks = append(tasks, taskID)
	p.CompletedTasks = tasks
	p.IsCompleted = len(tasks) >= OrientationCategoryThreshold

	s = s.withProgress(c, p)
	s.OverallCompleted = s.Main.IsCompleted && s.Social.IsCompleted &&
		s.Surveys.IsCompleted && s.Testing.IsCompleted && s.AI.IsCompleted
	return s
}

// InOrientation reports whether the user is still onboarding. While true,
// tier and category restrictions are bypassed so the user can reach every
// category's orientation tasks.
func (s OrientationStatus) InOrientation() bool {
	return !s.OverallCompleted
}
