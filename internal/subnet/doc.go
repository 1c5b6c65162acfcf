// Package subnet carves a VPC address block into equal-sized public and
// private subnets.
//
// A block of N subnet pairs is obtained by extending the source prefix by the
// smallest number of bits b such that 2^b >= 2N. The resulting sub-blocks are
// enumerated in ascending address order: the first N become public subnets and
// the next N private subnets. Any remaining sub-blocks are left unused.
//
// Example:
//
//	vpc, err := subnet.ParseBlock("10.0.0.0/16")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// 3 pairs need 6 subnets, which round up to eight /19 blocks
//	layout, err := subnet.NewPartitioner(subnet.DefaultMaxSubnets).Split(vpc, 3)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(layout.Public)  // [10.0.0.0/19 10.0.32.0/19 10.0.64.0/19]
//	fmt.Println(layout.Private) // [10.0.96.0/19 10.0.128.0/19 10.0.160.0/19]
package subnet
