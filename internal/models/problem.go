package models

type Problem struct {
	ID               int     `db:"id" json:"id"`
	Title            string  `db:"title" json:"title"`
	Difficulty       string  `db:"difficulty" json:"difficulty"`
	Category         string  `db:"category" json:"category"`
	Roadmap          string  `db:"roadmap" json:"roadmap"`
	RoadmapPosition  int     `db:"roadmap_position" json:"roadmap_position"`
	Subcategory      string  `db:"subcategory" json:"subcategory"`
	SubcategoryOrder int     `db:"subcategory_order" json:"subcategory_order"`
	Description      string  `db:"description" json:"description"`
	Solution         string  `db:"solution" json:"solution"`
	Explanation      string  `db:"explanation" json:"explanation"`
	YtLink           *string `db:"yt_link" json:"yt_link"`
}

// ProblemWithStatus annotates a catalog row with the caller's completion flag.
type ProblemWithStatus struct {
	Problem
	Completed bool `db:"completed" json:"completed"`
}

// AdminProblemRequest is the admin write body after the secret key has been
// stripped by the admin gate.
type AdminProblemRequest struct {
	Problem Problem `json:"problem" binding:"required"`
}
