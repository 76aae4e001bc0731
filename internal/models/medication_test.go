package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTakenKey(t *testing.T) {
	d := time.Date(2024, 3, 5, 22, 10, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-05_Aspirin_2", TakenKey(d, "Aspirin", 2))
}

func TestIsWeekday(t *testing.T) {
	assert.True(t, IsWeekday("Sunday"))
	assert.True(t, IsWeekday("Saturday"))
	assert.False(t, IsWeekday("sunday"))
	assert.False(t, IsWeekday(""))
}

func TestProfileApply(t *testing.T) {
	p := Profile{Name: "Ana", Age: 30, Sex: "Female", Weight: "60kg"}
	age := 31
	weight := "61 kg"
	p.Apply(ProfilePatch{Age: &age, Weight: &weight})

	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, 31, p.Age)
	assert.Equal(t, "61 kg", p.Weight)
	assert.Equal(t, "Female", p.Sex)
}
