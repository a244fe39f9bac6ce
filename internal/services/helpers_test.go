package services

import (
	"errors"
	"testing"

	"github.com/simlens/simlens/internal/dataset"
	"github.com/simlens/simlens/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runCSV = `internalCurrentDate,Agent,money,health,label
01/01/2024,A,100,10,x
02/01/2024,B,200,20,y
03/01/2024,A,300,30,z
04/01/2024,B,,40,w
05/01/2024,A,500,50,v
`

func testSession(t *testing.T) *source.Session {
	t.Helper()
	ds, err := dataset.Parse(runCSV, dataset.DefaultOptions())
	require.NoError(t, err)
	return source.NewStaticSession(ds)
}

func requireServiceError(t *testing.T, err error, code string) *ServiceError {
	t.Helper()
	require.Error(t, err)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr), "expected *ServiceError, got %T", err)
	assert.Equal(t, code, svcErr.Code)
	return svcErr
}
