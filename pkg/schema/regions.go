package schema

import (
	"slices"
	"strings"
)

// Partition is a cloud deployment realm.
type Partition string

const (
	PartitionCommercial Partition = "aws"
	PartitionGovCloud   Partition = "aws-us-gov"
	PartitionChina      Partition = "aws-cn"
)

// supportedRegions is the fixed catalogue accepted by the Region descriptor.
var supportedRegions = []string{
	"af-south-1",
	"ap-east-1",
	"ap-northeast-1",
	"ap-northeast-2",
	"ap-northeast-3",
	"ap-south-1",
	"ap-south-2",
	"ap-southeast-1",
	"ap-southeast-2",
	"ap-southeast-3",
	"ap-southeast-4",
	"ca-central-1",
	"ca-west-1",
	"cn-north-1",
	"cn-northwest-1",
	"eu-central-1",
	"eu-central-2",
	"eu-north-1",
	"eu-south-1",
	"eu-south-2",
	"eu-west-1",
	"eu-west-2",
	"eu-west-3",
	"il-central-1",
	"me-central-1",
	"me-south-1",
	"sa-east-1",
	"us-east-1",
	"us-east-2",
	"us-gov-east-1",
	"us-gov-west-1",
	"us-west-1",
	"us-west-2",
}

var regionSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(supportedRegions))
	for _, r := range supportedRegions {
		m[r] = struct{}{}
	}
	return m
}()

// Regions returns the supported region identifiers in sorted order.
func Regions() []string {
	return slices.Clone(supportedRegions)
}

// IsRegion reports whether r is a supported region.
func IsRegion(r string) bool {
	_, ok := regionSet[r]
	return ok
}

// PartitionOf returns the partition a region belongs to. Regions outside
// the supported catalogue are reported as commercial.
func PartitionOf(region string) Partition {
	if !IsRegion(region) {
		return PartitionCommercial
	}
	switch {
	case strings.HasPrefix(region, "us-gov-"):
		return PartitionGovCloud
	case strings.HasPrefix(region, "cn-"):
		return PartitionChina
	default:
		return PartitionCommercial
	}
}
