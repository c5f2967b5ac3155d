//go:build !js

package platform

const serverSide = true
