package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadGLTFInvalidPath(t *testing.T) {
	_, err := LoadGLTF("/nonexistent/path.glb")
	assert.Error(t, err)
}

func TestLoadDispatch(t *testing.T) {
	_, err := Load("model.fbx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load("/nonexistent/model.obj")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}
