// Package formats parses the edge-selection data an authoring tool
// attaches to exported meshes: stand-alone line list files and the
// selection maps stored in glTF scene and node extras.
package formats
