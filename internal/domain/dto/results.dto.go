package dto

// DietItemResult is the outcome of a single food item inside a batch
// submission. Items are attempted independently; one failure never
// short-circuits the rest.
type DietItemResult struct {
	FoodName string `json:"food_name"`
	Saved    bool   `json:"saved"`
	Error    string `json:"error,omitempty"`
}

type DietSaveResult struct {
	Items []DietItemResult `json:"items"`
}

/// AllSaved reports aggregate success: true only when every item succeeded.
func (r DietSaveResult) AllSaved() bool {
	if len(r.Items) == 0 {
		return false
	}
	for _, item := range r.Items {
		if !item.Saved {
			return false
		}
	}
	return true
}

// FailedNames lists the food names of failed items so feedback can name them
// individually.
func (r DietSaveResult) FailedNames() []string {
	var names []string
	for _, item := range r.Items {
		if !item.Saved {
			names = append(names, item.FoodName)
		}
	}
	return names
}
