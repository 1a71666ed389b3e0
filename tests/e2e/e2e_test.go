//go:build e2e

package e2e_test

import (
	"context"
	"flag"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"k8s.io/klog/v2"

	"github.com/ibm/ovsdb-portctl/pkg/libovsdb"
	"github.com/ibm/ovsdb-portctl/pkg/ovsdb"
	"github.com/ibm/ovsdb-portctl/pkg/vswitch"
)

var serverAddr = flag.String("server", "tcp:127.0.0.1:6640", "Server endpoint")
var bridgeName = flag.String("bridge", "br-e2e", "Existing bridge to add ports to")
var cli *ovsdb.Client
var ctx context.Context

func findPort(ports []vswitch.Port, name string) *vswitch.Port {
	for i := range ports {
		if ports[i].Name == name {
			return &ports[i]
		}
	}
	return nil
}

var _ = BeforeSuite(func() {
	var err error
	cli, err = ovsdb.ConnectEndpoint(*serverAddr, ovsdb.WithTimeout(10*time.Second), ovsdb.WithPortsGuard())
	Expect(err).NotTo(HaveOccurred())
	ctx = context.Background()
	Expect(cli.Ping(ctx)).To(Succeed())
	klog.Infof("Connected to %s", cli.Endpoint())
})

var _ = Describe("E2e", func() {
	Describe("read queries", func() {
		It("should list the ports", func() {
			ports, err := cli.ListPorts(ctx)
			Expect(err).NotTo(HaveOccurred())
			klog.Infof("ListPorts result=%v", ports)
		})
		It("should list the bridges with resolved ports", func() {
			bridges, err := cli.ListBridges(ctx)
			Expect(err).NotTo(HaveOccurred())
			for _, br := range bridges {
				Expect(len(br.Ports)).To(BeNumerically("<=", len(br.PortUUIDs)))
			}
			klog.Infof("ListBridges result=%v", bridges)
		})
	})

	Describe("add_port", func() {
		suffix := time.Now().UnixNano() % 100000
		accessPort := fmt.Sprintf("e2ea%05d", suffix)
		trunkPort := fmt.Sprintf("e2et%05d", suffix)

		BeforeEach(func() {
			bridges, err := cli.ListBridges(ctx)
			Expect(err).NotTo(HaveOccurred())
			found := false
			for _, br := range bridges {
				found = found || br.Name == *bridgeName
			}
			if !found {
				Skip(fmt.Sprintf("bridge %s does not exist", *bridgeName))
			}
		})

		It("should add an access port", func() {
			Expect(cli.AddPort(ctx, *bridgeName, accessPort, vswitch.Access{VLAN: 10})).To(Succeed())
			ports, err := cli.ListPorts(ctx)
			Expect(err).NotTo(HaveOccurred())
			port := findPort(ports, accessPort)
			Expect(port).NotTo(BeNil())
			Expect(vswitch.ModesEqual(port.Mode, vswitch.Access{VLAN: 10})).To(BeTrue())
		})
		It("should attach a trunk port to the bridge", func() {
			Expect(cli.AddPort(ctx, *bridgeName, trunkPort, vswitch.Trunk{VLANs: []uint16{20, 30}})).To(Succeed())
			bridges, err := cli.ListBridges(ctx)
			Expect(err).NotTo(HaveOccurred())
			for _, br := range bridges {
				if br.Name != *bridgeName {
					continue
				}
				Expect(findPort(br.Ports, trunkPort)).NotTo(BeNil())
			}
		})
		It("should refuse a duplicate port name", func() {
			err := cli.AddPort(ctx, *bridgeName, accessPort, vswitch.Access{VLAN: 10})
			Expect(libovsdb.IsKind(err, libovsdb.InconsistentInstruction)).To(BeTrue())
		})
		It("should refuse an unknown bridge", func() {
			err := cli.AddPort(ctx, *bridgeName+"-missing", "e2e-none", vswitch.Trunk{})
			Expect(libovsdb.IsKind(err, libovsdb.InconsistentInstruction)).To(BeTrue())
		})
	})
})
