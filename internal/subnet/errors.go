package subnet

import "errors"

var (
	// ErrInvalidBlock indicates the input is not a valid network address block
	ErrInvalidBlock = errors.New("invalid CIDR block")
	// ErrInvalidCount indicates a subnet pair count lower than one
	ErrInvalidCount = errors.New("subnet count must be a positive integer")
	// ErrTooManySubnets indicates the requested subnets exceed the configured limit
	ErrTooManySubnets = errors.New("total subnets exceeds limit")
	// ErrBlockTooSmall indicates the source block cannot be split into the requested subnets
	ErrBlockTooSmall = errors.New("cannot carve out that many subnets from given CIDR block")
	// ErrOutsideBlock indicates a subnet that is not contained in its VPC block
	ErrOutsideBlock = errors.New("subnet is not contained in the VPC CIDR block")
	// ErrOverlap indicates two subnets sharing part of their address range
	ErrOverlap = errors.New("subnets overlap")
)
