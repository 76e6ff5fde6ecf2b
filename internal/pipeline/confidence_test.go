package pipeline

import "testing"

func TestScoreConfidence(t *testing.T) {
	tests := []struct {
		name              string
		query             string
		employeeMentioned bool
		employeeFound     bool
		policyCount       int
		sourceCount       int
		wantScore         float64
		wantLevel         string
	}{
		{
			name:        "brief policy-only query with one hit",
			query:       "leave policy",
			policyCount: 1,
			sourceCount: 1,
			wantScore:   20, // 15 policy + 5 brief
			wantLevel:   "Low",
		},
		{
			name:        "policy contribution caps at 40",
			query:       "leave policy",
			policyCount: 10,
			sourceCount: 1,
			wantScore:   45, // 40 cap + 5 brief
			wantLevel:   "Low",
		},
		{
			name:              "employee found with policy grounding",
			query:             "How many annual leave days does EMP1004 have remaining?",
			employeeMentioned: true,
			employeeFound:     true,
			policyCount:       2,
			sourceCount:       2,
			wantScore:         90, // 30 + 30 + 15 detailed + 15 multi-source
			wantLevel:         "High",
		},
		{
			name:              "employee mentioned but missing",
			query:             "What is the sabbatical eligibility rule for EMP9999 here?",
			employeeMentioned: true,
			employeeFound:     false,
			policyCount:       2,
			sourceCount:       1,
			wantScore:         55, // 10 + 30 + 15 detailed
			wantLevel:         "Medium",
		},
		{
			name:      "nothing retrieved",
			query:     "hello",
			wantScore: 5, // brief query floor
			wantLevel: "Low",
		},
		{
			name:              "score clamps at 100",
			query:             "a very long and extremely detailed question about everything",
			employeeMentioned: true,
			employeeFound:     true,
			policyCount:       3,
			sourceCount:       3,
			wantScore:         100, // 30 + 40 cap + 15 + 15 = 100
			wantLevel:         "High",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreConfidence(tt.query, tt.employeeMentioned, tt.employeeFound, tt.policyCount, tt.sourceCount)
			if got.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", got.Score, tt.wantScore)
			}
			if got.Level != tt.wantLevel {
				t.Errorf("level = %q, want %q", got.Level, tt.wantLevel)
			}
			if len(got.Reasons) == 0 {
				t.Error("reasons must never be empty")
			}
		})
	}
}

func TestScoreConfidenceLevelBoundaries(t *testing.T) {
	// 30 employee + 15 policy + 5 brief = 50 sits exactly on the Medium edge.
	got := scoreConfidence("short", true, true, 1, 1)
	if got.Score != 50 || got.Level != "Medium" {
		t.Errorf("got score=%v level=%q, want 50/Medium", got.Score, got.Level)
	}

	// 30 + 15 + 15 detailed + 15 multi-source = 75 sits exactly on the High edge.
	got = scoreConfidence("one two three four five six", true, true, 1, 2)
	if got.Score != 75 || got.Level != "High" {
		t.Errorf("got score=%v level=%q, want 75/High", got.Score, got.Level)
	}
}
