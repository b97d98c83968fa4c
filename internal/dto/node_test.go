package dto

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNodeUpdate_Changes(t *testing.T) {
	tt := []struct {
		name     string
		body     string
		expected map[string]interface{}
	}{
		{
			name:     "empty body",
			body:     `{}`,
			expected: map[string]interface{}{},
		},
		{
			name: "notes only",
			body: `{"notes": "x"}`,
			expected: map[string]interface{}{
				"notes": strPtr("x"),
			},
		},
		{
			name: "explicit null clears nullable column",
			body: `{"hostname": null, "ssh_port": 2222, "is_alive": false}`,
			expected: map[string]interface{}{
				"hostname": (*string)(nil),
				"ssh_port": 2222,
				"is_alive": false,
			},
		},
		{
			name: "cluster move",
			body: `{"cluster_id": 7}`,
			expected: map[string]interface{}{
				"cluster_id": 7,
			},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var update NodeUpdate
			if err := json.Unmarshal([]byte(tc.body), &update); err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			actual := update.Changes()
			if !cmp.Equal(actual, tc.expected) {
				t.Errorf("diff: %s", cmp.Diff(tc.expected, actual))
			}
		})
	}
}

func TestNodeUpdate_NullOnRequiredField(t *testing.T) {
	for _, body := range []string{`{"name": null}`, `{"ssh_port": null}`, `{"cluster_id": null}`} {
		var update NodeUpdate
		err := json.Unmarshal([]byte(body), &update)
		if !errors.Is(err, ErrNullNotAllowed) {
			t.Errorf("%s: expected ErrNullNotAllowed, got %v", body, err)
		}
	}
}

func TestNodeCreate_ToModelDefaults(t *testing.T) {
	node := NodeCreate{Name: "n1", ClusterID: 3}.ToModel()

	if node.SSHPort != 22 {
		t.Errorf("expected default ssh port 22, got %d", node.SSHPort)
	}
	if node.SSHReachable || node.IsAlive {
		t.Error("expected ssh_reachable and is_alive to default to false")
	}
	if !node.PassingUnitTests {
		t.Error("expected passing_unit_tests to default to true")
	}
	if node.ClusterID != 3 {
		t.Errorf("expected cluster id 3, got %d", node.ClusterID)
	}

	no := false
	port := 2200
	node = NodeCreate{Name: "n2", ClusterID: 3, PassingUnitTests: &no, SSHPort: &port}.ToModel()
	if node.PassingUnitTests {
		t.Error("expected explicit false to be kept")
	}
	if node.SSHPort != 2200 {
		t.Errorf("expected ssh port 2200, got %d", node.SSHPort)
	}
}

func TestOptionalMarshal(t *testing.T) {
	b, err := json.Marshal(struct {
		A Optional[int]    `json:"a"`
		B Nullable[string] `json:"b"`
		C Nullable[string] `json:"c"`
	}{A: Some(1), B: Null[string](), C: Value("x")})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	expected := `{"a":1,"b":null,"c":"x"}`
	if string(b) != expected {
		t.Errorf("expected %s, got %s", expected, b)
	}
}

func strPtr(s string) *string {
	return &s
}
