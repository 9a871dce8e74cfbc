// Package model defines the records exchanged with the plant management
// backend: customers, plants and their revisions, lines, tank groups, tanks,
// and the catalog resources (devices, functions, products, requirements,
// chat sessions).
//
// Records mirror the backend's JSON shape. Tank geometry uses [MM], a
// tolerant millimeter value that decodes numbers, numeric strings and null,
// and treats anything else as missing so that one malformed record never
// aborts a render.
package model
