package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrokerList(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"empty env value", []string{""}, []string{}},
		{"trims and drops blanks", []string{" kafka-1:9092", "", "kafka-2:9092 "}, []string{"kafka-1:9092", "kafka-2:9092"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BrokerList(tt.in))
		})
	}
}
