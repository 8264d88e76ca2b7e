// Package runtime manages build containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and resolves stage bases:
// a base that exists as a file on disk is imported as an OCI archive,
// anything else is pulled as a registry reference. Resolved images are
// unpacked for the target platform and used to create containers with
// overlayfs snapshots.
//
// Each [Container] wraps a running containerd task. Commands execute
// inside the container, files move in and out as tar streams, and the
// final filesystem state is committed and exported as an OCI archive
// with the configured entrypoint and labels. Containers should be
// destroyed after the build to release their snapshots and tasks.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "wheelwright")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.StartContainer(ctx, "docker.io/library/python:3.11-slim", "build-1", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "python -m build --wheel", nil, "")
//	if err != nil {
//	    return err
//	}
//
//	if err := ctr.Export(ctx, "dist", []string{"ecs-composex"}, nil); err != nil {
//	    return err
//	}
package runtime
