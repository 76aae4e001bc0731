package models

// Profile user profile used by the classifier and the narrative generator
type Profile struct {
	UserID         string `json:"userId"`
	Name           string `json:"name"`
	Age            int    `json:"age"`
	Height         string `json:"height"`
	Weight         string `json:"weight"`
	Sex            string `json:"sex"`
	Conditions     string `json:"conditions"`
	CaretakerName  string `json:"caretakerName"`
	CaretakerPhone string `json:"caretakerPhone"`
	Email          string `json:"email"`
}

// ProfilePatch partial profile update; nil fields are left unchanged
type ProfilePatch struct {
	Name           *string `json:"name,omitempty"`
	Age            *int    `json:"age,omitempty"`
	Height         *string `json:"height,omitempty"`
	Weight         *string `json:"weight,omitempty"`
	Sex            *string `json:"sex,omitempty"`
	Conditions     *string `json:"conditions,omitempty"`
	CaretakerName  *string `json:"caretakerName,omitempty"`
	CaretakerPhone *string `json:"caretakerPhone,omitempty"`
	Email          *string `json:"email,omitempty"`
}

// Apply merges the patch into p.
func (p *Profile) Apply(patch ProfilePatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Age != nil {
		p.Age = *patch.Age
	}
	if patch.Height != nil {
		p.Height = *patch.Height
	}
	if patch.Weight != nil {
		p.Weight = *patch.Weight
	}
	if patch.Sex != nil {
		p.Sex = *patch.Sex
	}
	if patch.Conditions != nil {
		p.Conditions = *patch.Conditions
	}
	if patch.CaretakerName != nil {
		p.CaretakerName = *patch.CaretakerName
	}
	if patch.CaretakerPhone != nil {
		p.CaretakerPhone = *patch.CaretakerPhone
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
}
