package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "simbooking/internal/errors"
)

func TestExportCSV(t *testing.T) {
	repo := newFakeBookingRepo()
	b := repo.add("2030-06-04", "10:00", 60, "lezione-maestro")
	b.Notes = `disse "ciao", poi`
	b.Customer.Phone = "3331234567"
	b.Customer.UserType = "socio"
	b.CustomerFirstName = "Anna Maria"

	var buf bytes.Buffer
	require.NoError(t, NewExportService(repo, testLogger).WriteCSV(context.Background(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeader, records[0])

	row := records[1]
	assert.Equal(t, b.ID, row[0])
	assert.Equal(t, "2030-06-04", row[1])
	assert.Equal(t, "10:00", row[2])
	assert.Equal(t, "11:00", row[3])
	assert.Equal(t, "Anna Maria", row[4])
	assert.Equal(t, "Neri", row[5])
	assert.Equal(t, "Socio", row[8])
	assert.Equal(t, "Lezione maestro", row[10])
	assert.Equal(t, "60", row[11])
	assert.Equal(t, "Confermata", row[12])
	assert.Equal(t, `disse "ciao", poi`, row[13])
}

func TestExportCSVStoreError(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.err = errors.New("boom")
	err := NewExportService(repo, testLogger).WriteCSV(context.Background(), &bytes.Buffer{})
	requireHTTPError(t, err, http.StatusInternalServerError, apperrors.CodeDB)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "prenotazioni-2030-06-04.csv", ExportFilename(time.Date(2030, 6, 4, 12, 0, 0, 0, time.UTC)))
}
