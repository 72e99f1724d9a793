package dto

type ListFilter struct {
	Skip  int `form:"skip" binding:"omitempty,gte=0"`
	Limit int `form:"limit" binding:"omitempty,gte=1,lte=100"`
}

// Normalize applies the default page size.
func (f *ListFilter) Normalize() {
	if f.Limit == 0 {
		f.Limit = 100
	}
}
