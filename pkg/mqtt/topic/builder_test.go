package topic

import "testing"

func TestNewSet(t *testing.T) {
	s := NewSet("graduacao/iot/grupo_3")

	if s.Temperature != "graduacao/iot/grupo_3/temperatura" {
		t.Errorf("Temperature = %q", s.Temperature)
	}
	if s.Humidity != "graduacao/iot/grupo_3/umidade" {
		t.Errorf("Humidity = %q", s.Humidity)
	}
	if s.Status != "graduacao/iot/grupo_3/status" {
		t.Errorf("Status = %q", s.Status)
	}
}

func TestValidateNamespace(t *testing.T) {
	tests := []struct {
		namespace string
		wantErr   bool
	}{
		{"graduacao/iot/grupo_3", false},
		{"home", false},
		{"", true},
		{"home/+", true},
		{"home/#", true},
		{"/home", true},
		{"home/", true},
	}

	for _, tt := range tests {
		if err := ValidateNamespace(tt.namespace); (err != nil) != tt.wantErr {
			t.Errorf("ValidateNamespace(%q) error = %v, wantErr %v", tt.namespace, err, tt.wantErr)
		}
	}
}
