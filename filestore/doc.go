// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package filestore keeps claim attachments in an object store.

Each claim owns one folder named CLAIM_<number>. Folders are looked up
before they are created, so repeated registrations of the same number share
a folder:

	folder, err := files.EnsureFolder(ctx, filestore.FolderName(number))
	obj, err := files.Upload(ctx, folder, filestore.File{Name: "foto.jpg", Body: data})

S3Store talks to S3 or any S3-compatible endpoint. MemoryStore is used for
local runs and tests.
*/
package filestore
