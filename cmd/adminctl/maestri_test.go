package main

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simbooking/internal/entities"
)

func TestPrintOverview(t *testing.T) {
	var buf bytes.Buffer
	err := printOverview(&buf, &entities.MaestriOverview{
		Maestri: []entities.MaestroSummary{{
			MaestroEmail:     "luca@golf.it",
			LessonsCount:     3,
			PaidLessonsCount: 1,
			TotalOwed:        decimal.NewFromInt(30),
			PendingAmount:    decimal.NewFromInt(20),
		}},
		TotalOwed: decimal.NewFromInt(20),
		TotalPaid: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "EMAIL")
	assert.Contains(t, out, "luca@golf.it")
	assert.Contains(t, out, "30.00")
	assert.Contains(t, out, "outstanding 20.00")
	assert.Contains(t, out, "paid 10.00")
}

func TestCreateAdminRequiresCredentials(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "")
	cmd := createAdminCmd()
	cmd.SetArgs([]string{"--email", "a@b.it"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	assert.EqualError(t, err, "--email and --password (or ADMIN_PASSWORD) are required")
}
