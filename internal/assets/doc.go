// Package assets discovers the files referenced by each content source and
// mirrors sources, images and static files into the build directory.
package assets
