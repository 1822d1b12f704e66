// Package s3 provides an Amazon S3 implementation of the blobstore.Store
// interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3store.NewStore(s3.NewFromConfig(cfg), "my-bucket",
//	    func(o *s3store.Options) { o.Prefix = "corpora/" },
//	)
//
//	corpus, err := svmcorpus.Open("train.svmlight", svmcorpus.WithStore(store))
//
// # Features
//
//   - Open-ended range reads for offset-based document lookup
//   - Multipart streaming uploads without local spooling
//   - Configurable key prefix for multi-tenant isolation
package s3
