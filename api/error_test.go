package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestER(t *testing.T) {
	for _, tc := range []struct {
		err  error
		code int
		msg  string
	}{
		{errors.E(errors.Op("a"), errors.Invalid, "bad input"), http.StatusBadRequest, "bad input"},
		{errors.E(errors.Op("a"), errors.Duplicate, "exists"), http.StatusBadRequest, "exists"},
		{errors.E(errors.Op("a"), errors.E(errors.Op("b"), errors.NotFound, "gone")), http.StatusNotFound, "gone"},
		{errors.E(errors.Op("a"), errors.Permission, "no"), http.StatusUnauthorized, "no"},
		{errors.E(errors.Op("a"), errors.Transient, "conflict"), http.StatusConflict, "conflict"},
		{errors.E(errors.Op("a"), errors.Internal, "boom"), http.StatusInternalServerError, "Internal Server Error"},
		{fmt.Errorf("plain"), http.StatusInternalServerError, "plain"},
	} {
		res := ER(tc.err)
		assert.Equal(t, tc.code, res.Code, tc.err.Error())
		assert.Equal(t, tc.msg, res.Message, tc.err.Error())
	}
}
