package entity

// Status is the visibility of a photo row in the gallery table.
type Status string

const Public Status = "public"
